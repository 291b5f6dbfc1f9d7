// Package magnifier is the core loop of lenzu: a four-state machine that follows
// the cursor, captures the area under it, and runs the OCR, translation and
// overlay pipeline on demand.
//
// # States
//
// Each toggle (Space or right click) advances the state:
//
//	Free -> MoveWindow -> Capturing -> Frozen -> Free
//
// Free and MoveWindow grab and present the area around the cursor on every tick;
// MoveWindow also keeps the window centred on the cursor. Capturing runs the
// pipeline exactly once and always moves on to Frozen, whether or not recognition
// succeeded. Frozen does nothing so the result stays readable.
//
// # Failure Handling
//
// Nothing in a tick is fatal. A failed cursor query reuses the last position. A
// failed grab skips presenting for that tick. Within the pipeline a failed OCR
// shows the raw capture, a failed translation overlays the recognized text
// instead, and a failed composition shows the raw capture.
//
// # Blocking
//
// Tick runs on the host's update goroutine and blocks for the whole pipeline.
// OCR and translation are bounded by their configured timeouts.
package magnifier
