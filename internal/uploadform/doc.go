// Package uploadform models the single-file upload form: a name field and a file
// picker, validated before any network I/O, with an image/PDF preview and a
// submission that reports progress and ends in a success or failure banner.
//
// The form never mutates a shared status record. Every transition builds a fresh
// State and hands it to the render callback:
//
//	Idle -> Validating -> Invalid -> Idle (next interaction)
//	                   -> Uploading(0..100) -> Succeeded | Failed -> Idle
//
// Image previews are object URLs acquired on select and revoked when a new file
// replaces them or the form is closed.
package uploadform
