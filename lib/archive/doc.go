// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive provides archive format detection, extraction, and
// deterministic tarball assembly for nappo.
//
// Input archives (whatever the upstream feed serves) are detected from
// magic bytes: zip, gzip tar, zstd tar, lz4 tar, or plain tar. Output
// is a single tarball with lexicographic member ordering, epoch
// timestamps, and normalized ownership and mode bits, so that repacking
// identical inputs produces byte-identical output.
package archive
