// Package rsu tracks a single-stock portfolio funded by equity grants
// (vesting events) and open-market sales, valued both in USD and BRL.
//
// The core is a replay engine: operations are sorted chronologically and
// folded over a running Position using the weighted-average-cost method.
//   - Vesting adds shares and cost basis; the BRL cost uses the bid rate.
//   - Trade removes a proportional share of the cost basis and realizes a
//     profit or loss in BRL: proceeds at the ask rate minus the average cost
//     re-expressed at the bid rate of the sale date.
//   - Realized profit is accumulated per calendar year and reset to zero by
//     the first operation of a new year.
//
// Exchange rates come from a RateSource (a fixed rate, a JSONL table, or the
// Banco Central do Brasil PTAX series in package bcb) through a RateResolver
// that walks back over weekends and holidays, optionally memoized by a
// CachedResolver.
//
// Every Position is an immutable value: each operation produces a new one and
// the ordered list of them is the portfolio history, consumed by the
// yearly summaries, the renderer and the export packages.
package rsu
