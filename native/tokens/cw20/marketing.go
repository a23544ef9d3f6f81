package cw20

import (
	"bytes"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/common"
)

const logoSizeCap = 5 * 1024

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type EmbeddedLogo struct {
	Svg []byte `json:"svg,omitempty"`
	Png []byte `json:"png,omitempty"`
}

type Logo struct {
	URL      *string       `json:"url,omitempty"`
	Embedded *EmbeddedLogo `json:"embedded,omitempty"`
}

type InstantiateMarketingInfo struct {
	Project     *string `json:"project,omitempty"`
	Description *string `json:"description,omitempty"`
	Marketing   *string `json:"marketing,omitempty"`
	Logo        *Logo   `json:"logo,omitempty"`
}

// UpdateMarketing fields set to "" are cleared, nil fields are untouched.
type UpdateMarketing struct {
	Project     *string `json:"project,omitempty"`
	Description *string `json:"description,omitempty"`
	Marketing   *string `json:"marketing,omitempty"`
}

type LogoInfo struct {
	URL      *string `json:"url,omitempty"`
	Embedded bool    `json:"embedded,omitempty"`
}

type MarketingInfoResponse struct {
	Project     string    `json:"project,omitempty"`
	Description string    `json:"description,omitempty"`
	Logo        *LogoInfo `json:"logo,omitempty"`
	Marketing   string    `json:"marketing,omitempty"`
}

type DownloadLogoResponse struct {
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

type storedMarketing struct {
	Project     string
	Description string
	Marketing   string
	HasLogo     bool
	LogoURL     string
	Embedded    bool
}

type storedLogo struct {
	MimeType string
	Data     []byte
}

var (
	marketingKey = []byte("cw20/marketing")
	logoKey      = []byte("cw20/logo")
)

func verifyLogo(logo Logo) (*storedLogo, error) {
	if logo.URL != nil {
		return nil, nil
	}
	if logo.Embedded == nil {
		return nil, cerrors.ErrInvalidMessage.Wrapf("empty logo")
	}
	switch {
	case logo.Embedded.Png != nil:
		data := logo.Embedded.Png
		if len(data) > logoSizeCap {
			return nil, ErrLogoTooBig
		}
		if !bytes.HasPrefix(data, pngHeader) {
			return nil, ErrInvalidPngHeader
		}
		return &storedLogo{MimeType: "image/png", Data: data}, nil
	case logo.Embedded.Svg != nil:
		data := logo.Embedded.Svg
		if len(data) > logoSizeCap {
			return nil, ErrLogoTooBig
		}
		trimmed := bytes.TrimLeft(data, " \t\r\n")
		if !bytes.HasPrefix(trimmed, []byte("<?xml ")) && !bytes.HasPrefix(trimmed, []byte("<svg")) {
			return nil, ErrInvalidXmlPreamble
		}
		return &storedLogo{MimeType: "image/svg+xml", Data: data}, nil
	default:
		return nil, cerrors.ErrInvalidMessage.Wrapf("empty embedded logo")
	}
}

func (m *storedMarketing) applyLogo(store types.Store, logo Logo) error {
	blob, err := verifyLogo(logo)
	if err != nil {
		return err
	}
	m.HasLogo = true
	if logo.URL != nil {
		m.LogoURL = *logo.URL
		m.Embedded = false
		return store.KVDelete(logoKey)
	}
	m.LogoURL = ""
	m.Embedded = true
	return store.KVPut(logoKey, blob)
}

// InitMarketing stores the optional marketing block given at instantiation.
func InitMarketing(deps types.Deps, info *InstantiateMarketingInfo) error {
	if info == nil {
		return nil
	}
	var stored storedMarketing
	if info.Project != nil {
		stored.Project = *info.Project
	}
	if info.Description != nil {
		stored.Description = *info.Description
	}
	if info.Marketing != nil {
		addr, err := common.ValidateAddr(deps.API, *info.Marketing)
		if err != nil {
			return err
		}
		stored.Marketing = addr
	}
	if info.Logo != nil {
		if err := stored.applyLogo(deps.Storage, *info.Logo); err != nil {
			return err
		}
	}
	return deps.Storage.KVPut(marketingKey, stored)
}

func loadMarketing(store types.Store) (storedMarketing, bool, error) {
	var stored storedMarketing
	ok, err := store.KVGet(marketingKey, &stored)
	return stored, ok, err
}

func ExecuteUpdateMarketing(deps types.Deps, info types.MessageInfo, msg UpdateMarketing) (*types.Response, error) {
	stored, ok, err := loadMarketing(deps.Storage)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoMarketing
	}
	if stored.Marketing == "" || stored.Marketing != info.Sender {
		return nil, cerrors.ErrUnauthorized
	}
	if msg.Project != nil {
		stored.Project = *msg.Project
	}
	if msg.Description != nil {
		stored.Description = *msg.Description
	}
	if msg.Marketing != nil {
		if *msg.Marketing == "" {
			stored.Marketing = ""
		} else {
			addr, err := common.ValidateAddr(deps.API, *msg.Marketing)
			if err != nil {
				return nil, err
			}
			stored.Marketing = addr
		}
	}
	if err := deps.Storage.KVPut(marketingKey, stored); err != nil {
		return nil, err
	}
	return types.NewResponse().AddAttribute("action", "update_marketing"), nil
}

func ExecuteUploadLogo(deps types.Deps, info types.MessageInfo, logo Logo) (*types.Response, error) {
	stored, ok, err := loadMarketing(deps.Storage)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoMarketing
	}
	if stored.Marketing == "" || stored.Marketing != info.Sender {
		return nil, cerrors.ErrUnauthorized
	}
	if err := stored.applyLogo(deps.Storage, logo); err != nil {
		return nil, err
	}
	if err := deps.Storage.KVPut(marketingKey, stored); err != nil {
		return nil, err
	}
	return types.NewResponse().AddAttribute("action", "upload_logo"), nil
}

func QueryMarketingInfo(deps types.Deps) (MarketingInfoResponse, error) {
	stored, ok, err := loadMarketing(deps.Storage)
	if err != nil || !ok {
		return MarketingInfoResponse{}, err
	}
	out := MarketingInfoResponse{Project: stored.Project, Description: stored.Description, Marketing: stored.Marketing}
	if stored.HasLogo {
		if stored.Embedded {
			out.Logo = &LogoInfo{Embedded: true}
		} else {
			url := stored.LogoURL
			out.Logo = &LogoInfo{URL: &url}
		}
	}
	return out, nil
}

func QueryDownloadLogo(deps types.Deps) (DownloadLogoResponse, error) {
	var blob storedLogo
	ok, err := deps.Storage.KVGet(logoKey, &blob)
	if err != nil {
		return DownloadLogoResponse{}, err
	}
	if !ok {
		return DownloadLogoResponse{}, cerrors.ErrNotFound.With("item", "logo")
	}
	return DownloadLogoResponse{MimeType: blob.MimeType, Data: blob.Data}, nil
}
