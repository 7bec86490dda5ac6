/*
Package models defines the Protected object model: the public/private field
split every synced entity (User, Space, Board, Note, File, FileData) is built
from, plus the serialize/deserialize machinery that turns private fields into
an encrypted Body and back.

A Protected type embeds Base for its id/body/keys/in-memory key, and
implements PublicPrivateSplit/ApplyPublic/ApplyPrivate by hand — there is no
struct-tag reflection here, favoring explicit methods over magic. Serialize
and Deserialize are pure functions: callers
(pkg/dispatcher) are responsible for running them on the crypto pool, not this
package.
*/
package models
