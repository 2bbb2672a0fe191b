// Package treasury models a company holding bitcoin in treasury and the
// risk of owning its shares. It is local-first: everything it knows lives
// in a folder of human-readable, version-controllable files.
//
// The core functionalities include:
//   - Market Data: daily closes of the treasury asset (BTC) and of the
//     company shares (MSTR) in yearly JSONL files.
//   - Tranches: every BTC acquisition with its own cost basis.
//   - Company NAV: the bitcoin and balance-sheet net asset values, the
//     market premium over them, and daily snapshots of these figures.
//   - Positions: personal holdings of the shares, valued and exposed.
//   - Simulation: Monte Carlo scenarios of BTC and of the shares through
//     the montecarlo package, optionally calibrated on the history, and
//     archived through the store package.
//
// This package serves as the foundational logic for the `tsy` command-line
// tool and its HTTP server.
package treasury
