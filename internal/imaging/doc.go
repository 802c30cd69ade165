// Package imaging turns still images into intensity matrices.
//
// Decoding accepts PNG, JPEG, GIF, BMP, TIFF and WebP. The first frame of an
// animated GIF is used. JPEG EXIF orientation is honored.
//
// Sampling converts the decoded image to 8-bit luminance, resizes it onto a
// fixed Width×Height grid and optionally stretches the result onto 0-255.
// Matrix rows run top to bottom and columns left to right, matching image
// coordinates where (0,0) is the top-left pixel.
//
// # Filters
//
//   - area: box averaging, the default; best for downscaling
//   - bilinear: linear interpolation
//   - bicubic: Catmull-Rom interpolation
//
// # Thread Safety
//
// Sampler carries no mutable state and may be shared across goroutines.
package imaging
