// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mempool provides a policy-enforced pool of unconfirmed transactions.

A key responsibility of the mempool is to validate submitted transactions
against a ledger of spendable outputs and the local admission policy before
admitting them. Admitted transactions are tracked together with their in-pool
dependency graph, which keeps an ancestor fee rate per entry: the combined
fee of the transaction and all of its unconfirmed ancestors over their
combined virtual size. That rate drives every ordering the pool exposes.

The pool supports:

  - Admission validation: structural sanity, input resolution against the
    ledger and live entries, value and fee policy, standardness, and an
    externally supplied signature predicate.
  - Replacement: a transaction conflicting with live entries is admitted
    only when it satisfies the replacement rules, atomically evicting the
    conflicting entries and their descendants.
  - Capacity management: when the pool exceeds its byte budget, the entries
    with the lowest ancestor fee rates are evicted along with their
    descendants.
  - Orphan handling: transactions with unresolved inputs may be retained
    until their missing parents arrive, at which point they are promoted.
  - Block confirmation: confirmed transactions leave the pool without
    cascading, their descendants are re-linked, and double spends of
    confirmed outputs are removed.
  - Priority iteration and block selection: snapshots and selections share
    one canonical order in which no transaction precedes its unconfirmed
    ancestors.

Errors returned by the package are either a RuleError, meaning the
transaction was rejected by a rule and the pool is unchanged, or an
AssertError, meaning an internal invariant was violated.
*/
package mempool
