// Package archive defines the command interface to the Archive Engine.
//
// The engine owns the container format: header layout, entry table,
// compression. pakmerge only ever talks to it through three commands:
//   - ReadHeader lists the entry table of an existing archive
//   - Pack writes a set of sources into a new archive, reporting progress
//     as a stream of Events
//   - TerminatePack requests cooperative cancellation of an in-flight Pack
//
// Concrete engines live in sub-packages (see zippak); archivetest provides a
// scriptable fake.
package archive
