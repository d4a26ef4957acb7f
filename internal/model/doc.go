package model

// Package model defines the data structures shared across the app: download
// items, their lifecycle status, video metadata and playlist entries. Items are
// handed out as value snapshots; only the download service mutates the originals.
