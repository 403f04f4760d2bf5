// Package core holds the value model of the interpreter: cells, the stubs
// and flexes they point at, the garbage collector, the data stack and the
// error type every failure is expressed in.
//
// A Cell is a fixed-size record. Its header carries a heart (the base type),
// a sigil, and a lift byte that encodes quoting depth, quasiforms and the
// antiform state in one number. Antiforms are only ever produced through
// TrapCoerceToAntiform, and containers refuse to store them.
//
// Stubs are allocated through a Heap. New stubs are manual: they sit on the
// manuals list until Manage hands them to the collector, or Free releases
// them. Recycle marks from the registered roots and sweeps what it did not
// reach; references that outlive a freed stub are pointed at a shared
// decayed stub so that stale access fails with a clear error.
package core
