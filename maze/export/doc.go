// Package export renders a grid together with a search result.
//
//   - Text draws the maze for a terminal with the path overlaid
//   - PNG draws a 50px-per-cell image
//   - GeoJSON emits the path, trace and endpoints as a FeatureCollection
//     in grid space, with x = column and y = row
package export
