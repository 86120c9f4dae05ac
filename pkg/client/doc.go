// Package client implements soft navigation for an mfext application.
//
// A Store owns the navigation state of one page session: the current
// pathname and whether a navigation was just requested. Components reach it
// through the context (FromContext) and change routes only through its
// named operations: Push, Replace, Back and HandlePopState. Every change is
// published to subscribers as an Event.
//
// A Manager subscribes to the store. For each event it fetches the component
// stream of the target URL, updates history, records the new page info and
// renders the result into the root. When any of that fails it falls back to
// a full browser navigation, so a broken soft navigation never leaves the
// page stuck.
//
// Client references in a rendered page come alive through Components: a
// HydratingRoot draws each page into a Surface and mounts every reference
// that has a registered MountFunc, passing it the props the server encoded.
//
// The browser itself is reached through small interfaces (History, Location,
// Document, Root, Surface, Element) so the manager runs under plain go test. Package
// client/browser implements them with syscall/js.
package client
