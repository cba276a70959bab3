// Package client speaks the bridge line protocol over TCP.
//
//	c, err := client.Dial(ctx, "127.0.0.1:5000")
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	sum, err := c.Call(ctx, "add", "int,int -> int", 3, 4)
//
// An ERR response is returned as a *RemoteError. A Client is not safe for
// concurrent use.
package client
