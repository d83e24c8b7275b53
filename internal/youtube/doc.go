// Package youtube talks to the YouTube Data API v3 on behalf of the channel
// owner.
//
// Client exposes the five calls the reply cycle needs (comment threads, video
// snapshot, channel snapshot, reply insert, video update) and funnels each one
// through a single wrapper that maps googleapi errors onto the services error
// markers (403 becomes services.ErrForbidden) and forwards them to an optional
// notifier. The auth helpers run the installed-app OAuth console flow and keep
// the token file current as it refreshes.
package youtube
