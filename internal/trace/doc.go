// Package trace parses scheduler execution traces into state-transition records.
//
// Schedulers print their execution as an ASCII table:
//
//	+------------------------------------------------+
//	|Time of Transition |PID | Old State | New State |
//	+------------------------------------------------+
//	|                 0 |  1 |       NEW |     READY |
//	|                 0 |  1 |     READY |   RUNNING |
//	|                10 |  1 |   RUNNING |TERMINATED |
//	+------------------------------------------------+
//
// Only rows with exactly four cells become a Transition. Header rows, borders,
// and anything else that does not fit are dropped without error so that a
// messy trace still yields every usable record.
package trace
