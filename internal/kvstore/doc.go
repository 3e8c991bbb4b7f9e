/*
Package kvstore provides the small key-value stores behind the client
identity.

Three backends implement Store:

  - FileStore: a JSON document under the XDG data directory
  - RedisStore: shared between agents, SETNX for first-writer-wins
  - MemoryStore: ephemeral runs and tests

SetIfAbsent is the only write the identity provider needs. Every backend
makes it atomic and returns the stored value, so two agents racing to
create an identity agree on the winner.
*/
package kvstore
