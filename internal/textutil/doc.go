// Package textutil derives human-facing display titles from image file names.
package textutil
