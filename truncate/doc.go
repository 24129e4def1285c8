// Package truncate shortens message content for display.
//
// Session listings show each message as a single line cut to a token
// budget, so a long answer does not flood the terminal:
//
//	line := truncate.Preview(msg.Content, 40, counter)
//
// Cuts fall on rune boundaries and the result, marker included, never
// exceeds the budget. Nothing here is applied to content that is sent to
// a vendor.
package truncate
