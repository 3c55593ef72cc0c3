// Package textutil holds small string helpers shared by the CLI renderers.
package textutil
