// Package alphamap preserves the transparency of a source image across a
// remote conversion that may drop or premultiply its alpha channel.
//
// Extract records every pixel whose alpha is below 255 into a sparse Map.
// Apply writes those values back into the converted image and re-encodes it
// as PNG. Fully opaque pixels are never stored, so the map size follows the
// number of transparent pixels rather than the image area.
package alphamap
