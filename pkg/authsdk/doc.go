// Package authsdk is the Go client for the GateKey authentication service.
//
// The SDKClient covers the unauthenticated surface (register, login, refresh,
// validate, password recovery). Logging in yields a Session, which holds the
// token pair, refreshes the access token transparently when it nears expiry,
// and exposes the authenticated operations (logout, role changes).
//
//	client := authsdk.NewSDKClient("https://auth.example.com")
//	session, err := client.Login(ctx, "user@example.com", "hunter2!")
//	if err != nil {
//		// handle err
//	}
//	defer session.Logout(ctx)
package authsdk
