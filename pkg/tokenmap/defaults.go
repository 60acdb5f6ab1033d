package tokenmap

// defaultMappings is the skill identifier migration table.
var defaultMappings = []Mapping{
	{Legacy: "knowledge-orchestrator", Canonical: "AetherCore.Orchestrator"},
	{Legacy: "automation-graph", Canonical: "AetherCore.EventMesh"},
	{Legacy: "optimization-profile", Canonical: "AetherCore.OptiGraph"},
	{Legacy: "deep-research-extension", Canonical: "AetherCore.DeepForge"},
	{Legacy: "dealfinder-extension", Canonical: "AetherCore.MarketSweep"},
	{Legacy: "prompt-factory", Canonical: "AetherCore.PromptFoundry"},
	{Legacy: "skill-messaging-bus", Canonical: "AetherCore.EventMesh"},
}

// DefaultMappings returns a copy of the skill identifier migration table.
func DefaultMappings() []Mapping {
	return append([]Mapping(nil), defaultMappings...)
}

// Default returns a Map built from the default migration table.
func Default() *Map {
	return MustNew(defaultMappings)
}
