// Package password hashes the development server's account passwords with
// Argon2id and verifies login attempts against them.
//
// Hashes use the PHC string layout with unpadded base64 segments:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
package password
