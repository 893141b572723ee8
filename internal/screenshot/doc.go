// Package screenshot compares screenshots captured by the editor with golden
// reference images.
//
// Images are decoded with the standard image registry; PNG and the netpbm
// family (the editor writes PPM) are registered. Similarity is the mean
// per-channel agreement of the RGB values in [0, 1]; images of different
// dimensions have similarity 0.
package screenshot
