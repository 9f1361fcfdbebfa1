// Package journal records the machine's history in SQLite.
//
// Every accepted state machine event and every handshake line write is
// stored with the run it belongs to. A run is one process lifetime of the
// controller, identified by a UUID. The journal survives broker and
// InfluxDB outages, so it is the local audit trail of what the machine
// actually drove.
//
// Recorder adapts a Journal to machine.Observer.
package journal
