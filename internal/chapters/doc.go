// Package chapters derives a time window from the free-text chapter list in a
// video description.
//
// Extraction is a pure function: lines are scanned for timestamp tokens, each
// token's label is classified as a start marker, an end marker, or a plain
// chapter boundary via keyword heuristics, and candidate windows are assembled
// from the markers. When several candidates exist the selection policy picks
// the winner; the default assumes the sermon is the longest labeled segment.
// The policy for a description with no usable markers lives in the pipeline
// configuration, not here.
package chapters
