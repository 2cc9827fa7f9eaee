// Package imports discovers which npm packages a source file depends on.
//
// The reconciliation engine only needs the [Collector] interface. [Scanner]
// is the built-in implementation: a static pass over JavaScript, TypeScript,
// Vue and MDX sources that recognises
//
//	import x from "pkg"
//	import "pkg"
//	export { y } from "pkg"
//	require("pkg")
//	import("pkg")
//
// and reduces each specifier to the package that provides it with
// [PackageName]. Relative paths, URLs and Node built-ins are not packages and
// are dropped. Collection never fails: an unreadable file contributes nothing.
package imports
