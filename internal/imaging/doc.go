// Package imaging provides the image helpers used to inspect a YOLO dataset.
//
// It loads dataset images through a cache backed by an afero filesystem,
// strokes bounding boxes, stamps class ids with a tiny bitmap font, crops
// annotated regions, and writes PNG output.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X growing
// rightward and Y downward. Boxes arrive as annotation.Box values with float
// corners; PixelRect rounds them to whole pixels and clips them to the image,
// so boxes that spill past an edge are drawn partially rather than rejected.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. DrawBox and CropBox never mutate
// their input; StampClass draws into the *image.RGBA it is given, normally
// the copy DrawBox returned.
package imaging
