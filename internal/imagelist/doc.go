// Package imagelist exposes labeled image manifests through a generic
// indexed-access interface.
//
// Images are never decoded here. A Sample carries the image path and label;
// callers that need pixels plug in a Transform hook that receives the path.
package imagelist
