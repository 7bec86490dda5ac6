/*
Package permission checks whether the acting user may perform a given
mutation against a space.

Rule summary: owners may do anything in their space; admins may edit the
space and add, edit and delete its boards and notes; members may add and
edit boards and notes but never delete anything; nobody but the owner adds
or deletes a space itself.
*/
package permission
