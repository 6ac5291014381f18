// Package receipt implements persistence for the install Receipt.
//
// The FileRepository stores and loads the receipt as JSON inside the release
// directory; the installer, uninstaller and preflight services depend on the
// Repository interface it satisfies.
package receipt
