// Package anthropic adapts the Anthropic Messages API.
//
// Importing the package registers the "anthropic" vendor. BuildRequest
// returns *anthropic.MessageNewParams and ParseResponse expects
// *anthropic.Message.
//
// The Messages API wants strictly alternating turns, so consecutive
// messages with the same role are joined before they are sent. The system
// prompt travels in the request's system field rather than as a message.
package anthropic
