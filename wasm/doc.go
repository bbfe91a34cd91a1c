// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wasm runs wasm blueprints for the kernel using wasmer
//
// a module exports its linear memory as "memory" and an allocator
// "alloc(len i32) -> i32"; every blueprint export has the signature
// "(ptr i32, len i32) -> i64" receiving its encoded arguments and
// returning a packed pointer (address << 32 | length) to its encoded
// result, or zero for no result
//
// host functions imported from "env":
//
//   call_function(ptr, len) -> i64   (package, blueprint, function, args)
//   call_method(ptr, len) -> i64     (receiver, method, args)
//   receiver() -> i64                the method receiver, zero for functions
//   read_field(n) -> i64             field n of the receiver
//   write_field(n, ptr, len)         replace field n of the receiver
//   log(ptr, len)                    debug message
//
// a failing host call traps the guest and the kernel error is returned
// from the invocation
package wasm
