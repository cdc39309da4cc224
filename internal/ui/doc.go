// Package ui renders command lifecycle events for people watching a build log.
//
// Detailed telemetry keeps flowing through the structured logger; the console
// observer only emits one readable line per event.
package ui
