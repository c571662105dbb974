// Package batch drives the configure-and-render loop over a DNA set.
//
// A [Driver] works through job ids start, start+1, ... start+size-1. Each
// call to [Driver.Advance] runs exactly one step:
//
//  1. look up DNA number current (1-based) in the set
//  2. apply it to the scene with the configurator
//  3. hand a frame at OutputPath(prefix, current) to the renderer
//  4. advance the cursor and save a checkpoint
//
// and returns a [Directive] telling the caller when to call again. The host
// owns the timer; [Run] stands in for it outside the host.
//
// # States
//
//	Idle ──Advance──▶ Stepping ──ok, more jobs──▶ Idle
//	                      │
//	                      └──last job or error──▶ Done
//
// A failing render is retried with exponential backoff as long as the
// renderer marks the failure with [render.Retryable]. When retries run out
// the driver stops in Done with a RENDER error and the cursor still on the
// failed id, so a resumed run starts with it.
package batch
