// Package boticord is a typed client for the Boticord API (https://boticord.top).
//
// Posting stats:
//
//	client, err := boticord.New("your token", 1)
//	if err != nil {
//		return err
//	}
//	err = client.PostBotStats(ctx, boticord.BotStats{Servers: 2514, Shards: 3, Users: 338250})
//
// Every method returns either the decoded value or an *Error whose Kind is
// KindTransport, KindDecode or KindURL. Nothing is retried.
package boticord
