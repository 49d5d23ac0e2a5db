// Package imaging canonicalizes photos before they are hashed.
//
// Digests are sensitive to encoding, not pixels: the same picture saved twice
// by different tools hashes differently. Canonicalize decodes any supported
// format and re-encodes it as PNG with fixed settings, the same way the
// catalog's reference digests were produced from PNG data.
package imaging
