// Package prompts holds the fixed system prompts sent with every completion
// and the study aids derived from them.
package prompts

import (
	_ "embed"
	"strings"
)

//go:embed chat.md
var chatSystem string

//go:embed encounter.md
var encounterInstructions string

const encounterPreamble = "Here is a transcript from a simulated EMS patient encounter. Please provide your full analysis:\n\n"

// ChatSystem is the knowledge-base prompt used for study chat.
func ChatSystem() string { return strings.TrimRight(chatSystem, "\n") }

// EncounterSystem extends ChatSystem with the analysis instructions.
func EncounterSystem() string {
	return ChatSystem() + "\n\n" + strings.TrimRight(encounterInstructions, "\n")
}

// EncounterMessage wraps a transcript in the user message sent for analysis.
func EncounterMessage(transcript string) string {
	return encounterPreamble + transcript
}

var suggestions = []string{
	"What is the dose of Epinephrine for anaphylaxis?",
	"Walk me through the primary survey",
	"What are the H's and T's of cardiac arrest?",
	"Explain the SAMPLE history mnemonic",
	"What are the signs of a tension pneumothorax?",
	"Naloxone dosing for opioid overdose?",
}

// Suggestions returns the starter questions offered on an empty chat.
func Suggestions() []string {
	return append([]string(nil), suggestions...)
}
