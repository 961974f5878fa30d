// Package planner computes how many fixed-factor magnification passes are
// needed to reach a target pixel size. Pure arithmetic, no side effects.
package planner
