// Package render turns configured scene states into render requests.
//
// # Overview
//
// A [Frame] is one render job: the job id, the output path the host should
// write to and the [scene.State] captured after configuration. A
// [Renderer] consumes frames. Three implementations are provided:
//
//   - [ManifestRenderer] writes the state as JSON to <path>.json, for a host
//     process that picks manifests up on its own
//   - [GraphRenderer] draws the visible part tree with Graphviz, for preview
//     without a host
//   - [CommandRenderer] writes the manifest and then runs a host command
//
// [Multi] chains renderers in order.
//
// # Output paths
//
// [OutputPath] builds the path for a job id by appending the decimal id to
// the configured prefix, with no separator:
//
//	render.OutputPath("renders/", 7) // "renders/7"
//
// # Retries
//
// Renderers mark transient failures with [Retryable]. The batch driver
// retries only those.
package render
