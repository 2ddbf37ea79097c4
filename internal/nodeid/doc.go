/*
Package nodeid provides the identifier of a card within a graph.

A card id is either a string or a number in persisted graphs. ID keeps
which of the two it was so a graph round-trips unchanged, and rejects
every other shape (objects, lists, booleans) while decoding. Two ids are
equal when their canonical string forms are equal, so the number 1 and
the string "1" address the same card.
*/
package nodeid
