// Package transform builds the Babel configuration written to a build
// workspace.
//
// Every reconciliation starts from [Base] and, when the source workspace
// carries its own .babelrc, deep-merges it on top with [Synthesize]: objects
// merge key by key, everything else (arrays included) is replaced by the
// override. A broken override never stops a build; the base is used and the
// problem is reported through [Result.Err].
package transform
