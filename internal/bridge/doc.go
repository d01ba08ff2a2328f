// Package bridge connects live controllers to their bus-facing devices.
//
// A ControllerDevice owns the lifecycle seam between the two worlds: on
// the first initialisation it resolves the controller's stored
// properties against the class schema, creates the controller in the
// element pool, and registers itself as a listener. On every later
// initialisation it re-initialises the existing controller in place, so
// a device restart reattaches to running hardware instead of duplicating
// it.
//
// Controller-internal notifications (state, status, element list) arrive
// through OnElementEvent and are replayed onto the bus through the
// device facade, with controller-domain states translated into the
// device vocabulary on the way.
package bridge
