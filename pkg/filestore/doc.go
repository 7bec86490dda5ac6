/*
Package filestore persists a note's attached file as chacha20poly1305
ciphertext on disk, addressed by a "u_<user_id>.n_<note_id>.enc" filename
under "<data_dir>/files/". The bytes never go into the local KV store; Save
queues the upload record itself through syncmodel.Outgoing, while
RemoveAll only deletes files and leaves the sync bookkeeping of a delete to
its caller (DeleteModel).
*/
package filestore
