/*
Package migrate implements the tree-wide identifier migration.

	+-------------+
	|   Walker    |
	| (two pass)  |
	+------+------+
	       |
	+------+------+      +-------------+
	|  Rewriter   |----->|   Renamer   |
	|  (content)  |      | (leaf name) |
	+-------------+      +-------------+

🎯 Purpose:
- Rewrites legacy skill identifiers to their canonical form inside text files
- Renames files and directories whose names carry a legacy identifier
- Never overwrites an existing path

🔄 Flow, per directory:
1. Recurse into every non-excluded subdirectory
2. Rewrite the content of every eligible file
3. List the directory again and rename its children

Children are renamed only after their whole subtree has been processed, so
the paths used while recursing stay valid.

⚡ Failure handling:
- An unusable root is the only fatal error
- Per-entry failures (unreadable files, failed writes or renames) are logged to the
  error stream, counted, and skipped
- Rename collisions are warnings

🔍 Example:

	m, err := migrate.New(migrate.Options{Root: ".", Config: config.Default()})
	if err != nil {
		return err
	}
	stats, err := m.Run(ctx)

Running the migration a second time over the same tree is a no-op.
*/
package migrate
