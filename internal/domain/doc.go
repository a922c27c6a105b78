// Package domain holds the core entities of the account lifecycle: the
// Account and its two token kinds, with their construction and expiry rules.
// Nothing here touches storage, transport, or any other infrastructure.
package domain
