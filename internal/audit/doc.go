// Package audit checks that every effect an application lists is registered.
//
// The application source is searched for "effects: [ ... ]" arrays. Each
// listed id is looked up in the effects source as register('id',
// register("id", or register(`id`. Ids are reported in first-seen order.
package audit
