// Package ir holds the intermediate representation of render fixtures.
//
// A fixture is the textual description of a render model: the model ports,
// the exit nodes with their prerequisites, and the segments that attach
// exit nodes to stretches of the timeline. The compiler produces it from
// CUE sources; the fixture package turns it into a live Segmentation.
//
// This package contains type definitions and hashing only. It imports
// nothing internal, so every other package may depend on it.
//
// Key design constraints:
//   - Times and durations stay textual ("1s200ms", "-inf"); parsing happens
//     when the fixture is built
//   - NO float types anywhere - frame rates are rationals like "30000/1001"
//   - All JSON tags use snake_case
package ir
