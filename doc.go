// Package walletauth binds cryptographic wallet addresses to marketplace
// accounts and gates page access by a reconciled role.
//
// Wallet connection:
//   - Connector owns the connection to a WalletProvider (browser-injected or
//     the ethwallet RPC adapter). It holds an immutable WalletInfo snapshot
//     that is replaced wholesale on every provider change event, and bounds
//     every balance and chain-id query with a timeout. A connected wallet is
//     authoritative on its own; it does not imply a linked account.
//
// Identity:
//   - IdentityService resolves a wallet address (and optionally an attached
//     hosted session) to an Account. Sign-in distinguishes "no linked
//     account" (offer registration) from "session pinned to another wallet"
//     (refuse). Role claims arrive from two places with inconsistent
//     vocabulary; CanonicalRole reconciles them into buyer, seller, or admin
//     at every read site. Mutating calls are fenced with a monotonic
//     sequence so a stale completion never clobbers newer session state.
//
// Access decisions:
//   - RouteGuard runs the admit-or-redirect state machine for a protected
//     view, navigating through a Navigator sink and notifying at most once
//     per denial. HasAccess is its side-effect-free twin for conditional
//     rendering. HTTP adapters for go-router and fiber turn the guard into
//     middleware.
package walletauth
