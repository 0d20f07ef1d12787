// Package oracle calls the ecrecover primitive and decodes its response.
//
// A Client encodes (digest, v, r, s) into the precompile's 128-byte input and
// reads the recovered address from the response. How the call reaches the
// primitive is up to the Caller: Software runs it in process, EthCaller runs
// it on an Ethereum node via eth_call.
package oracle
