/*
Package config manages the migration configuration for aethermig.

	            +-------------+
	            |   Config    |
	            | (defaults)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   JSON   | |   HCL    |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Carries the legacy -> canonical token table
- Carries the text extension allow-list, the excluded directory names and
  the protected file patterns
- Lets a repository override any of those lists from a config file

🔄 Flow:
1. Resolve picks an explicit file, a discovered .aethermig.* file, or nothing
2. The parser registered for the file extension decodes it
3. Validate fills every empty list from the compiled-in defaults and checks
   the rest

📝 Override semantics:
A list present in the file replaces the default list entirely. Mappings keep
the order they are written in; matching order is computed by the tokenmap
package (longest token first).

🔍 Example:

	cfg, err := config.Resolve(ctx, "", root)
	if err != nil {
		return err
	}
	cfg.IsTextFile("README.md")      // true
	cfg.IsExcludedDir("node_modules") // true
*/
package config
