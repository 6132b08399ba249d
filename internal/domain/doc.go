// Package domain models normalized world events aggregated from heterogeneous
// feeds: a seismic summary feed, a sentiment-scored news-article index, and
// syndicated RSS feeds fetched through CORS-bypass proxies.
//
// # Event schema
//
// Every source is normalized into [Event]. Importance is an integer urgency
// scale from 1 (info) to 5 (critical) used for sorting and filtering. It is
// assigned at normalization time (magnitude thresholds for seismic events,
// tone magnitude for sentiment-scored articles, keyword tiers for syndicated
// items) and may only be raised afterwards, by cross-source correlation.
//
// # Location inference
//
// Seismic events carry structured coordinates. Everything else gets
// best-effort text inference: [ExtractLocation] runs a whole-word,
// case-insensitive scan of the embedded gazetteer (countries with aliases,
// major cities, named regions) and picks the longest matching key, so
// "South Korea" wins over "Korea" when both appear. Ties between equal-length
// keys fall to map iteration order and are deliberately left unspecified.
// No match is a normal outcome; callers fall back to [GlobalLocation], whose
// nil coordinates mean "no geolocation available" rather than an error.
//
// # ID generation
//
// Event IDs are deterministic SHA-256 short hashes of each raw item's stable
// fields, prefixed with a source slug. Re-fetching the same raw item on a
// later refresh cycle therefore yields the same ID, which keeps correlation
// back-references and downstream consumers stable across cycles. See [EventID].
//
// # Time
//
// All recency decisions (breaking windows, default timestamps, staleness)
// read the package clock, swappable in tests via [SetClock].
package domain
