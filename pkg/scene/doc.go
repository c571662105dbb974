// Package scene models the host's part hierarchy and material library.
//
// The layout mirrors what the 3D host exposes to traitforge:
//
//	Scene
//	├── Body                 object receiving the pattern material
//	├── Materials            material library (Body*, Accessory*, Eye* collections)
//	└── Parts                root container
//	    └── TraitGroup       one per DNA slot, in slot order
//	        └── Variant      one per slot value; hidden unless selected
//	            └── Object   renderable object tree
//
// Objects are classified once, when the scene is built, into a [Tag]
// (Static, EyeballSurface, AccessorySurface or Plain) from the naming markers
// artists use in the host. Traversal code switches on the tag and never
// inspects names again.
//
// Scenes are loaded from a TOML description with [Load] or [Decode]. A
// [Scene.Snapshot] captures the configured state (visibility, material
// assignments and ramp colors) in a form the host, or a preview renderer,
// can apply.
package scene
