/*
Package janitor provides a deferred-cleanup resource registry: a container
that accumulates heterogeneous disposable handles under explicit or anonymous
keys and releases each of them exactly once, either individually (when a key
is overwritten or removed) or all together on bulk cleanup.

# Overview

Two layers make up the core:

  - [Registry] owns ordered keyed storage and the disposal algorithm,
    including the "overwrite disposes the previous occupant" rule and
    tolerance for re-entrant mutation during a cleanup sweep.
  - [Manager] is a keyed-assignment facade over a registry. It auto-generates
    numeric ids for anonymous tasks, shadows its own reserved operation names,
    and integrates cancellable futures.

# Task Variants

A payload is classified once at registration into a closed set of variants,
tested in precedence order. Disposal matches the variant exhaustively:

  1. zero-argument function: invoked
  2. connection handle (Disconnect or Unsubscribe method): disconnected
  3. cancellable handle (Cancel method): cancelled
  4. nested *Manager: its own CleanUp runs, cascading down the tree
  5. teardown object (Destroy, Dispose, or Close method): torn down
  6. anything else: no-op, with a WARN diagnostic

# Basic Usage

	m := janitor.New()

	m.Set("conn", conn)                       // disposed via Disconnect
	id, _ := m.Give(func() { f.Close() })     // anonymous task
	m.Give(timer)                             // disposed via Cancel

	m.Remove(id)   // cancel one task early
	m.CleanUp()    // dispose everything; the manager is reusable afterwards

# Nesting

A manager registered as a task inside another manager forms a cleanup tree:
cleaning the parent cascades into the child.

	parent := janitor.New()
	child := janitor.New()
	parent.Give(child)
	parent.CleanUp() // child's tasks are disposed too

# Concurrency

A registry serializes storage mutation behind a per-instance mutex and
detaches an entry before disposing it, so a given task is disposed by exactly
one caller even when an overwrite races a bulk cleanup. Disposal itself runs
outside the lock, which is what allows disposal callbacks to re-enter the
same registry.
*/
package janitor
