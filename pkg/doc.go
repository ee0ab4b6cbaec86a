// Package pkg provides the libraries behind shadebridge, a converter that
// rewrites Maya shading networks into Katana shading nodes for Arnold or
// RenderMan.
//
// # Overview
//
// A material is converted as one self-contained run. The host scene is
// read through a read-only query, rewritten node by node, and handed to an
// emitter:
//
//	scene dump (JSON/YAML)
//	         ↓
//	    [source] package (read-only scene query)
//	         ↓
//	    [pipeline] package (preprocess → map → postprocess → finalize)
//	         ↓
//	    [graph] package (interchange document + editor layout)
//	         ↓
//	    [emit] package (Katana XML, JSON, DOT/SVG/PNG/PDF)
//
// # Quick Start
//
//	snap, _ := source.LoadSnapshot("scene.json")
//	runner := pipeline.NewRunner(nil, logger)
//	res, _ := runner.Execute(ctx, snap, pipeline.Options{Root: "woodSG"})
//	_ = emit.Write(os.Stdout, res.Export(), emit.FormatXML)
//
// # Main Packages
//
// ## Rewrite Engine
//
// [pipeline] - Runs a conversion and owns its working graphs, name
// allocator, rename ledger and diagnostics. [pipeline.Runner.ExecuteAll]
// converts many materials concurrently.
//
// [naming] - Unique name allocation for nodes synthesized during a run.
//
// [ledger] - Rename ledger: resolves chains of identity substitutions and
// rewires connections through them.
//
// [mapper] - Translates one source node into a target node through its
// mapping table.
//
// [ramp] - Encodes sparse ramp entries as the fixed arrays target ramps
// expect.
//
// [nodeset] - Ordered working set keyed by node ID.
//
// ## Renderer Profiles
//
// [profile] - Capability registry: per-type rewrite hooks, weights and type
// overrides plus the mapping tables of one renderer. The arnold and prman
// subpackages hold the bundled profiles; renderers lists and detects them.
//
// [schema] - YAML mapping tables with version variants.
//
// ## Data Model
//
// [scene] - Source nodes, connections, renames and value helpers.
//
// [target] - Target nodes and their parameter trees.
//
// [diag] - Per-run diagnostics.
//
// [errors] - Coded errors shared by every package.
//
// ## Infrastructure
//
// [cache] - Conversion cache with file, redis and null backends.
//
// [config] - TOML configuration.
//
// [observability] - Pipeline and cache hooks with a Prometheus exporter.
//
// [buildinfo] - Version information stamped at build time.
package pkg
