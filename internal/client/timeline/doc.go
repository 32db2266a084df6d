// Package timeline contains pure helpers over timeline data: time code
// formatting and parsing, frame snapping, scene bookmarks and element
// placement checks.
package timeline
