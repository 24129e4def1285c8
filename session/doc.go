// Package session models a named conversation and persists it to disk.
//
// A Session owns its full history. Trimming for a vendor call happens in
// SubmissionWindow and never changes the stored history:
//
//	sess := session.New("work", session.VendorOpenAI, 4096)
//	sess.Append(history.Human("Hello"))
//	window, err := sess.SubmissionWindow(prompt, overhead, counter)
//
// # Storage
//
// Store reads and writes sessions as YAML files:
//
//	~/.c/sessions/{id}.yaml
//	~/.c/sessions/anonymous/{uuid}.yaml
//
// The root is $C_ROOT/.c when C_ROOT is set. Watch follows a session file
// and emits the re-loaded session whenever its content changes.
package session
