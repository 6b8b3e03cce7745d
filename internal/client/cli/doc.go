// Package cli implements lentik-cli, a small terminal client for a Lentik
// server.
//
// Every command prompts for a PIN without echo and logs in first.
//
// tail subscribes to a family or chat socket and prints one line per event
// until interrupted. An application ping keeps the connection alive.
//
// upload registers a gallery item and PUTs the file to the presigned URL the
// server returns.
//
//	lentik-cli -s http://host:8000 -u alice tail <family_id> [chat_id]
//	lentik-cli -u alice upload <family_id> beach.jpg "Summer"
package cli
