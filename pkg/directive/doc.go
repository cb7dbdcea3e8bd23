// Package directive attaches attribute directives to rendered elements.
//
// After every render the host asks an Applier to match its visible
// directive definitions against its rendered subtree. Each match that is
// not yet bound to that directive type gets an instance from the injector,
// its inputs and outputs, and its host bindings. Instances whose element
// has left the subtree are destroyed on the next application.
package directive
