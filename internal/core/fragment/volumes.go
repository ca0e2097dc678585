package fragment

import (
	"fmt"

	"kgen/internal/core/domain"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/utils/ptr"
)

func EmptyDirVolume(name string) (corev1.Volume, error) {
	if name == "" {
		return corev1.Volume{}, domain.NewConfigurationError("emptyDirVolumes", "volume name must not be empty")
	}
	return corev1.Volume{
		Name: name,
		VolumeSource: corev1.VolumeSource{
			EmptyDir: &corev1.EmptyDirVolumeSource{},
		},
	}, nil
}

func SecretVolume(name string, cfg domain.SecretVolumeConfig) (corev1.Volume, error) {
	field := "secretVolumes." + name
	if cfg.SecretName == "" {
		return corev1.Volume{}, domain.NewConfigurationError(field+".secretName", "must not be empty")
	}
	defaultMode, err := mode(field+".defaultMode", cfg.DefaultMode)
	if err != nil {
		return corev1.Volume{}, err
	}
	items, err := keyToPaths(field, cfg.Items)
	if err != nil {
		return corev1.Volume{}, err
	}
	return corev1.Volume{
		Name: name,
		VolumeSource: corev1.VolumeSource{
			Secret: &corev1.SecretVolumeSource{
				SecretName:  cfg.SecretName,
				DefaultMode: ptr.To(defaultMode),
				Optional:    ptr.To(cfg.Optional),
				Items:       items,
			},
		},
	}, nil
}

func ConfigMapVolume(name string, cfg domain.ConfigMapVolumeConfig) (corev1.Volume, error) {
	field := "configMapVolumes." + name
	if cfg.ConfigMapName == "" {
		return corev1.Volume{}, domain.NewConfigurationError(field+".configMapName", "must not be empty")
	}
	defaultMode, err := mode(field+".defaultMode", cfg.DefaultMode)
	if err != nil {
		return corev1.Volume{}, err
	}
	items, err := keyToPaths(field, cfg.Items)
	if err != nil {
		return corev1.Volume{}, err
	}
	return corev1.Volume{
		Name: name,
		VolumeSource: corev1.VolumeSource{
			ConfigMap: &corev1.ConfigMapVolumeSource{
				LocalObjectReference: corev1.LocalObjectReference{Name: cfg.ConfigMapName},
				DefaultMode:          ptr.To(defaultMode),
				Optional:             ptr.To(cfg.Optional),
				Items:                items,
			},
		},
	}, nil
}

// PvcVolume converts a claim reference. The default mode is validated but has no
// counterpart on a claim volume source.
func PvcVolume(name string, cfg domain.PvcVolumeConfig) (corev1.Volume, error) {
	field := "pvcVolumes." + name
	if cfg.ClaimName == "" {
		return corev1.Volume{}, domain.NewConfigurationError(field+".claimName", "must not be empty")
	}
	if _, err := mode(field+".defaultMode", cfg.DefaultMode); err != nil {
		return corev1.Volume{}, err
	}
	return corev1.Volume{
		Name: name,
		VolumeSource: corev1.VolumeSource{
			PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
				ClaimName: cfg.ClaimName,
			},
		},
	}, nil
}

func AzureFileVolume(name string, cfg domain.AzureFileVolumeConfig) (corev1.Volume, error) {
	field := "azureFileVolumes." + name
	if cfg.ShareName == "" {
		return corev1.Volume{}, domain.NewConfigurationError(field+".shareName", "must not be empty")
	}
	if cfg.SecretName == "" {
		return corev1.Volume{}, domain.NewConfigurationError(field+".secretName", "must not be empty")
	}
	return corev1.Volume{
		Name: name,
		VolumeSource: corev1.VolumeSource{
			AzureFile: &corev1.AzureFileVolumeSource{
				SecretName: cfg.SecretName,
				ShareName:  cfg.ShareName,
				ReadOnly:   cfg.ReadOnly,
			},
		},
	}, nil
}

func GitRepoVolume(name string, cfg domain.GitRepoVolumeConfig) (corev1.Volume, error) {
	if cfg.Repository == "" {
		return corev1.Volume{}, domain.NewConfigurationError("gitRepoVolumes."+name+".repository", "must not be empty")
	}
	return corev1.Volume{
		Name: name,
		VolumeSource: corev1.VolumeSource{
			GitRepo: &corev1.GitRepoVolumeSource{
				Repository: cfg.Repository,
				Directory:  cfg.Directory,
				Revision:   cfg.Revision,
			},
		},
	}, nil
}

func keyToPaths(field string, items map[string]domain.ItemConfig) ([]corev1.KeyToPath, error) {
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]corev1.KeyToPath, 0, len(items))
	for _, key := range domain.SortedKeys(items) {
		item := items[key]
		if item.Path == "" {
			return nil, domain.NewConfigurationError(fmt.Sprintf("%s.items.%s.path", field, key), "must not be empty")
		}
		m, err := optionalMode(fmt.Sprintf("%s.items.%s.mode", field, key), item.Mode)
		if err != nil {
			return nil, err
		}
		out = append(out, corev1.KeyToPath{Key: key, Path: item.Path, Mode: m})
	}
	return out, nil
}

// Volumes converts every volume record of cfg. Each volume kind is emitted in
// sorted key order; empty-dir volumes keep their declaration order.
func Volumes(cfg domain.Config) ([]corev1.Volume, error) {
	var out []corev1.Volume
	add := func(v corev1.Volume, err error) error {
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	}

	for _, name := range cfg.EmptyDirVolumes {
		if err := add(EmptyDirVolume(name)); err != nil {
			return nil, err
		}
	}
	for _, name := range domain.SortedKeys(cfg.SecretVolumes) {
		if err := add(SecretVolume(name, cfg.SecretVolumes[name])); err != nil {
			return nil, err
		}
	}
	for _, name := range domain.SortedKeys(cfg.ConfigMapVolumes) {
		if err := add(ConfigMapVolume(name, cfg.ConfigMapVolumes[name])); err != nil {
			return nil, err
		}
	}
	for _, name := range domain.SortedKeys(cfg.PvcVolumes) {
		if err := add(PvcVolume(name, cfg.PvcVolumes[name])); err != nil {
			return nil, err
		}
	}
	for _, name := range domain.SortedKeys(cfg.AzureFileVolumes) {
		if err := add(AzureFileVolume(name, cfg.AzureFileVolumes[name])); err != nil {
			return nil, err
		}
	}
	for _, name := range domain.SortedKeys(cfg.GitRepoVolumes) {
		if err := add(GitRepoVolume(name, cfg.GitRepoVolumes[name])); err != nil {
			return nil, err
		}
	}
	return out, nil
}
