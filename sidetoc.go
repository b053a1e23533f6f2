// Package sidetoc builds a navigable table of contents for chat-style web
// pages. It reads rendered chat pages, heuristically classifies headings and
// user/assistant message turns, and keeps the resulting topic list in sync
// with the page as the conversation grows.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, sqlite/).
package sidetoc
