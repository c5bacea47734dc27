// Package magick wraps the ImageMagick CLI for derivative conversion and
// pixel-signature computation. The signature is a digest over decoded pixel
// samples, so later metadata stamping does not change it.
package magick
