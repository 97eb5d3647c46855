/*
Package session hosts live negotiations.

A Manager keeps negotiations in memory, serializes every operation on one
negotiation behind a reference-counted lock (optionally backed by a distributed
lock across replicas) and writes the transcript of each negotiation that reaches
END to a ports.Archive.
*/
package session
