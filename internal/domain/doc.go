// Package domain models citizen reports of city events and the fixed map they
// are drawn on.
//
// # Reports
//
// An [EventReport] pairs what the user wrote (a description, an optional
// photo and the position it was taken from) with an AI-derived
// [Classification]: a short title, a one-sentence summary and one of five
// [EventCategory] labels. Reports are created once, after a successful
// classification, and never change afterwards.
//
// Report ids are the creation time in Unix milliseconds. Collisions are not
// defended against; one user submits one report at a time.
//
// # Categories
//
// The category set is closed:
//
//	Traffic | Civic Issue | Community Event | Safety Hazard | Other
//
// Classifier output is free text, so [ParseCategory] folds case and word
// separators before matching and coerces anything else to Other.
//
// # Map projection
//
// The map is a fixed latitude/longitude rectangle ([Bounds], by default
// [BengaluruBounds]). [Bounds.Project] converts a location to percentages
// from the top-left corner:
//
//	top  = (1 - (lat - latMin) / (latMax - latMin)) * 100
//	left = (lng - lngMin) / (lngMax - lngMin) * 100
//
// Locations outside the closed rectangle are valid but not displayable;
// Project reports false for them and no marker is drawn. Values are never
// clamped to the edge.
package domain
