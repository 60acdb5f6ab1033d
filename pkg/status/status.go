// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package status

// 📊 Outcome is the terminal state of a run
type Outcome int

const (
	OutcomeNothingToDo Outcome = iota // no content or name changed
	OutcomeChanged                    // at least one file or directory changed
)

// String returns a string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeNothingToDo:
		return "nothing-to-do"
	case OutcomeChanged:
		return "changed"
	default:
		return "unknown"
	}
}

// 📊 Stats aggregates the counters of a single run. It is created per run
// and passed by pointer through the walk.
type Stats struct {
	FilesUpdated       int
	FilesRenamed       int
	DirectoriesRenamed int
	TotalReplacements  int

	// Warnings counts rename collisions.
	Warnings int
	// Errors counts recoverable per-item failures.
	Errors int

	DryRun bool
}

// 🏭 NewStats creates zeroed counters for a run
func NewStats(dryRun bool) *Stats {
	return &Stats{DryRun: dryRun}
}

// RecordUpdate counts a file whose content was rewritten.
func (s *Stats) RecordUpdate(replacements int) {
	s.FilesUpdated++
	s.TotalReplacements += replacements
}

// RecordRename counts a renamed entry and the tokens replaced in its name.
func (s *Stats) RecordRename(isDir bool, replacements int) {
	if isDir {
		s.DirectoriesRenamed++
	} else {
		s.FilesRenamed++
	}
	s.TotalReplacements += replacements
}

// RecordWarning counts a soft skip.
func (s *Stats) RecordWarning() {
	s.Warnings++
}

// RecordError counts a recoverable failure.
func (s *Stats) RecordError() {
	s.Errors++
}

// Changed reports whether any file or directory was (or would be) changed.
func (s *Stats) Changed() bool {
	return s.FilesUpdated != 0 || s.FilesRenamed != 0 || s.DirectoriesRenamed != 0
}

// Outcome distinguishes a verification run from a mutating one.
func (s *Stats) Outcome() Outcome {
	if s.Changed() {
		return OutcomeChanged
	}
	return OutcomeNothingToDo
}
